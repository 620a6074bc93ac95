// Package terminal implements the simulated shell: a fixed command table
// dispatched over the domain store, writing into a bounded line buffer.
package terminal
