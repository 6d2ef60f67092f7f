// Package plug defines the extension points rbee plugins implement.
//
// A plugin is any value with a stable [Plugin.Name]. It opts into stages by
// implementing zero or more capability interfaces:
//
//   - [Configurer]: receives its own config section before argument parsing
//   - [ArgExtender]: contributes flags to extensible sub-commands (clone, check)
//   - [ArgConsumer]: reads the parsed flags after the command line is parsed
//   - [CloneActor]: acts on one cloned repository and returns a [Result]
//
// A plugin implementing none of them is inert. Capabilities are detected once
// with [CapabilitiesOf] and stored as a [Capability] bitset by the registry.
//
// # Results
//
// A [Result] is immutable: its fields are only readable through accessors.
// Status ordering is SUCCESS < WARNING < ERROR, and [Worst] picks the most
// severe of a set.
//
// # Settings
//
// [Settings] maps upper-cased plugin names to [Section] values. Section getters
// always take (or imply) a default so a missing key never fails:
//
//	ignore := sec.StringList("ignore") // nil when absent
//	timeout, err := sec.Duration("timeout", 0)
package plug
