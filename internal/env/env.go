package env

import (
	"github.com/aquaponics-lab/aquamon/internal/config"
)

var Cfg *config.Config
