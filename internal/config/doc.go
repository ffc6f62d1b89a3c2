// Package config holds harvester configuration.
//
// Configuration is assembled from three layers, lowest priority first:
//
//  1. Built-in defaults (NewConfig)
//  2. An optional .lcscharvest YAML file (LoadConfigFile / FindConfigFile)
//  3. CLI flags (applied by the cmd package)
//
// The resulting Config struct is passed through the application by
// dependency injection; there is no global configuration state.
package config
