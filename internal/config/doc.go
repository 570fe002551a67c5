// Package config provides configuration loading, merging, and validation
// facilities for the sample host and the companion simulator.
//
// Configuration is assembled from multiple sources. Earlier sources take
// precedence for every field they set:
//  1. Command-line flags
//  2. Environment variables
//  3. A .env file (path from -env-file or DOTENV)
//  4. A JSON config file (path from -c/-config or CONFIG)
//
// The main entry points are [GetClientConfig], which yields a ready
// client.Config, and [GetCompanionConfig] for the simulator.
package config
