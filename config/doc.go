/*
Package config loads the optional lyrica.toml configuration file.

Every setting has a default, so the file is purely additive: storage
backend selection, embedding service location, search tuning knobs,
and extra genre lexicon entries. A missing file yields the defaults.

Example file:

	[storage]
	backend = "badger"
	path = "lyrica.db"

	[embedding]
	host = "http://localhost:11434/v1"
	model = "all-mpnet-base-v2"

	[search]
	genre_boost = 1.5
	max_hits = 10

	[genres]
	extra = ["vaporwave"]
*/
package config
