package env

import (
	"github.com/denisbrodbeck/machineid"
)

const appID = "pinvault"

// DeviceID retrieves the ID identifying this device, derived from the
// machine ID so the raw ID isn't published.
func DeviceID() (string, error) {
	return machineid.ProtectedID(appID)
}
