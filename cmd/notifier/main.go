package main

import (
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/goliatone/go-access-notifier/cmd/notifier/cmd"
)

func main() {
	cmd.Execute()
}
