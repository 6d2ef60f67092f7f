// Package hooks orchestrates rbee plugins through the stages of one run.
//
// A run moves through the stages strictly in order:
//
//  1. [Configure]: every [plug.Configurer] receives its config section
//     (upper-cased plugin name). Seals the [Registry].
//  2. [ContributeArgs]: every [plug.ArgExtender] adds flags to each
//     extensible sub-command. Flag names are not deduplicated.
//  3. The command line is parsed (by cobra, outside this package).
//  4. [ConsumeArgs]: every [plug.ArgConsumer] reads the parsed flags.
//  5. [Dispatch] / [DispatchAll]: every [plug.CloneActor] acts on each
//     cloned repository.
//
// # Ordering
//
// Plugins are always visited in registration order. Across repositories
// [DispatchAll] may run in parallel, but per repository the order holds.
//
// # Failure isolation
//
// Every plugin call goes through one wrapper that converts returned errors and
// panics into ERROR results. A failing plugin never stops its siblings or
// other repositories. Only registry construction errors ([DuplicateNameError])
// abort a run.
package hooks
