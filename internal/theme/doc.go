// Package theme provides named colour palettes for the snackbar. Themes are
// TOML files loaded from ~/.config/snackbar/themes/ or from the bundled set,
// and may inherit from another theme.
package theme
