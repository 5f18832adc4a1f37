package env

import (
	"bytes"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Environment is the inspector configuration: a yaml file overlaid with
// INJECTOR_* environment variables ("server.addr" -> INJECTOR_SERVER_ADDR).
type Environment struct {
	Config *viper.Viper
	path   string
}

func defaults(vip *viper.Viper) {
	vip.SetDefault("server.addr", "127.0.0.1:8089")
	vip.SetDefault("server.mode", "release")
	vip.SetDefault("log.level", "info")
	vip.SetDefault("log.development", false)
}

// New reads the yaml file at path. A missing file is not an error, the
// defaults and environment still apply.
func New(path string) (env *Environment, err error) {
	vip := viper.New()
	vip.SetConfigType("yaml")
	vip.SetEnvPrefix("injector")
	vip.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	vip.AutomaticEnv()
	defaults(vip)

	if path != "" {
		config, rErr := os.ReadFile(path)
		switch {
		case rErr == nil:
			if err = vip.ReadConfig(bytes.NewReader(config)); err != nil {
				return
			}
		case !os.IsNotExist(rErr):
			return nil, rErr
		}
	}

	env = &Environment{
		path:   path,
		Config: vip,
	}
	return
}

// Path is the config file the environment was loaded from, "" for none.
func (e *Environment) Path() string {
	return e.path
}

func (e *Environment) GetString(key string) string {
	return e.Config.GetString(key)
}

func (e *Environment) GetBool(key string) bool {
	return e.Config.GetBool(key)
}
