// Package doom turns a ViZDoom engine into a
// reinforcement learning environment.
//
// An Env wraps a Game, which is a handle on an engine
// running outside of this process.
// Observations are dictionaries of image buffers and game
// variables, and actions are indices into the buttons of
// the loaded config.
//
// AnyEnv and the wrappers in this package adapt an Env to
// github.com/unixpickle/anyrl for training.
package doom
