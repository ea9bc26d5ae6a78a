// Package config provides layered configuration for the churn analysis
// pipeline.
//
// Configuration is assembled from three sources, in increasing precedence:
//
//  1. Struct-tag defaults
//  2. CHURN_* environment variables
//  3. An optional YAML file passed on the command line
//
// The assembled configuration is validated before use; an invalid
// configuration aborts the run.
package config
