package download

// Options control one download attempt. The zero value means: built-in
// engine, resume when possible, never overwrite.
type Options struct {
	// UseAria2 delegates the transfer to an external aria2c process.
	UseAria2 bool
	// Aria2Native hands the terminal to aria2c instead of parsing its
	// output. Only meaningful with UseAria2.
	Aria2Native bool
	// Aria2Args are raw extra arguments for aria2c, split on shell-word
	// boundaries. When set they replace the built-in concurrency defaults.
	Aria2Args string
	// Overwrite ignores existing partial or complete files and restarts
	// from zero.
	Overwrite bool
}
