// openmem is a CLI for the cognitive memory engine: add, link, recall,
// reinforce, supersede, contradict, decay, and stats subcommands wrap
// a single local SQLite-backed store.
//
// Config resolution (highest wins): OPENMEM_* environment variables,
// the config file (--config, else ~/.openmem/config.yaml), built-in
// defaults; no command-line flag overrides these settings. The default
// database lives at ~/.openmem/memories.db.
package main

func main() {
	Execute()
}
