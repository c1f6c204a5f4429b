// Package cmd implements the chef subcommands.
//
// Every command locates the recipe file the same way: an explicit --file
// path wins, otherwise the working directory and its ancestors are
// searched for "cheffile" or "Cheffile".
package cmd
