//go:build !windows

package config

// Drive redirection comes from the profile and there is no system credential
// manager to register with, so only the client step runs by default.
func defaultLaunch() Launch {
	return Launch{
		MapShare:             []string{},
		UnmapShare:           []string{},
		RegisterCredential:   []string{},
		UnregisterCredential: []string{},
		RunClient:            []string{"xfreerdp", "{{.Profile}}"},
	}
}
