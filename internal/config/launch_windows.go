//go:build windows

package config

func defaultLaunch() Launch {
	return Launch{
		MapShare:             []string{"subst", "{{.Drive}}", "{{.Folder}}"},
		UnmapShare:           []string{"subst", "{{.Drive}}", "/d"},
		RegisterCredential:   []string{"cmdkey", "/add:{{.Endpoint}}", "/user:{{.Username}}", "/pass:{{.Password}}"},
		UnregisterCredential: []string{"cmdkey", "/delete:{{.Endpoint}}"},
		RunClient:            []string{"mstsc", "{{.Profile}}"},
	}
}
