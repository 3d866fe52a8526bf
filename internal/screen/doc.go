// Package screen is the terminal the dashboard draws on. It owns raw input
// mode, the alternate screen buffer, a bounded-wait key poll fed by a
// cancelable stdin reader, and single-write frame commits.
package screen
