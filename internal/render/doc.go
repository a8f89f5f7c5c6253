// Package render draws dashboard layouts for the terminal.
package render
