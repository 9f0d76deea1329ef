package main

import (
	"github.com/spf13/viper"
)

// settings layers the defaulting sources for command options: an
// explicit flag wins, then APISURF_* environment variables, then an
// apisurf.yaml config file in the working directory or ~/.config/apisurf.
func settings() *viper.Viper {
	v := viper.New()
	v.SetDefault("format", "recommended")
	v.SetDefault("output", "")

	v.SetConfigName("apisurf")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/apisurf")

	v.SetEnvPrefix("APISURF")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warningf("ignoring config file: %s", err)
		}
	} else {
		log.Infof("using config file %s", v.ConfigFileUsed())
	}
	return v
}

// resolve returns the flag value when set, the layered default
// otherwise.
func resolve(v *viper.Viper, key, flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return v.GetString(key)
}
