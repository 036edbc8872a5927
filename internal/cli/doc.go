// Package cli provides command-line interface setup and configuration
// for cardprep. It builds the cobra command tree, binds flags into viper
// and turns the resulting configuration into a processor and audio provider.
package cli
