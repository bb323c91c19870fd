package main

import (
	"fmt"
	"io"
	"reflect"

	"github.com/spf13/cobra"
	"github.com/tendant/reflect-metadata/pkg/reflectmeta"
)

type demoUser struct {
	Permissions []string
}

type demoBox struct {
	Length float64 `meta:"unit=cm"`
}

func NewDemoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Walk through imperative and declarative metadata definitions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(cmd.OutOrStdout(), reflectmeta.New())
		},
	}
}

func runDemo(out io.Writer, store *reflectmeta.Store) error {
	userObj := &demoUser{}
	if err := store.DefineMetadata("role", "admin", userObj, "permissions"); err != nil {
		return err
	}
	printLookup(out, store, "role", userObj, "permissions")
	printLookup(out, store, "role", userObj, "otherProp")

	boxType := reflect.TypeFor[demoBox]()
	if err := store.Decorate(boxType, "Length", store.Metadata("precision", 2)); err != nil {
		return err
	}
	if err := store.DeclareStruct(boxType); err != nil {
		return err
	}
	instance := &demoBox{Length: 12}
	printLookup(out, store, "unit", instance, "Length")
	printLookup(out, store, "precision", instance, "Length")

	stats := store.Stats()
	fmt.Fprintf(out, "store: %d targets, %d slots, %d delegates\n", stats.Targets, stats.Slots, stats.Delegates)
	return nil
}

func printLookup(out io.Writer, store *reflectmeta.Store, key string, target reflectmeta.Target, property string) {
	value, ok := store.GetMetadata(key, target, property)
	if !ok {
		fmt.Fprintf(out, "%T.%s[%s] = <not found>\n", target, property, key)
		return
	}
	fmt.Fprintf(out, "%T.%s[%s] = %v\n", target, property, key, value)
}
