// Package config provides loading and environment overlay for the client
// configuration. It exposes a Default() baseline, a YAML Load, and a FromEnv
// overlay reading OML_* variables.
//
// Example:
//
//	cfg := config.Default()
//	if fileCfg, err := config.Load("/etc/oml.yaml"); err == nil {
//	    cfg = fileCfg
//	}
//	config.FromEnv(&cfg)
//	client, _ := oml.New(cfg)
//	defer client.Close(context.Background())
package config
