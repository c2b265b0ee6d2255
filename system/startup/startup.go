package startup

import (
	"fmt"
	"os"
	"path/filepath"
)

// InstallService writes a systemd unit for the monitor daemon. execPath should
// be the installed aquamon binary; workdir is where config.json and the data
// directory live.
func InstallService(servicePath, execPath, workdir string) error {
	unit := fmt.Sprintf(`[Unit]
Description=Aquaponics monitor client
After=network.target

[Service]
Type=simple
WorkingDirectory=%s
ExecStart=%s
Restart=on-failure
RestartSec=5s

[Install]
WantedBy=multi-user.target
`, workdir, execPath)

	if err := os.MkdirAll(filepath.Dir(servicePath), 0755); err != nil {
		return err
	}
	return os.WriteFile(servicePath, []byte(unit), 0644)
}
