// Package cli implements the interactive terminal client.
//
// The REPL reads one command per line. Mutating commands write to the
// local store and return at once; syncing happens in the background and
// the prompt shows "syncing" while a cycle runs.
//
//	help                    show commands
//	login                   authenticate this device (prompts for the key)
//	list [kind]             list records (default: errands)
//	add <kind>              create a record interactively
//	edit <kind> <id>        edit a record; empty answers keep values
//	pay <id> [method]       settle an errand (cash, transfer)
//	rm <kind> <id>          delete a record
//	summary [date]          daily summary (default: today)
//	close [date]            cash close (default: today)
//	opening [date]          show the day opening, pulling it if needed
//	sync                    run a full sync of every kind now
//	backup <kind>           export a collection to object storage
//	exit | quit             leave
//
// Kinds: errands (e), expenses (x), openings (o).
package cli
