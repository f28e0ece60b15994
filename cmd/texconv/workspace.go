package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/goopsie/mhwTexTools/pkg/modpack"
	"github.com/goopsie/mhwTexTools/pkg/workspace"
)

func runWorkspace(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("workspace requires a subcommand: new, list, status, package")
	}

	switch args[0] {
	case "new":
		return workspaceNew(args[1:])
	case "list":
		return workspaceList(args[1:])
	case "status":
		return workspaceStatus(args[1:])
	case "package":
		return workspacePackage(args[1:])
	default:
		return fmt.Errorf("unknown workspace subcommand: %s", args[0])
	}
}

func workspaceNew(args []string) error {
	fs := flag.NewFlagSet("workspace new", flag.ContinueOnError)
	name := fs.String("name", "", "workspace directory to create")
	source := fs.String("source", "", "directory containing the game's .tex files")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *name == "" || *source == "" {
		fs.Usage()
		return fmt.Errorf("workspace new requires -name and -source")
	}

	ws, err := workspace.Create(*name, *source)
	if err != nil {
		return err
	}
	fmt.Printf("Created workspace %s: %d stickers in %d collections\n", ws.Root(), len(ws.Stickers()), ws.CollectionCount())
	return nil
}

func workspaceList(args []string) error {
	fs := flag.NewFlagSet("workspace list", flag.ContinueOnError)
	dir := fs.String("dir", ".", "directory to search for workspaces")
	if err := fs.Parse(args); err != nil {
		return err
	}

	list, err := workspace.List(*dir)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Println("No workspaces found")
		return nil
	}
	for _, ws := range list {
		fmt.Printf("%s\t%d stickers\t%d collections\n", ws.Name(), len(ws.Stickers()), ws.CollectionCount())
	}
	return nil
}

func workspaceStatus(args []string) error {
	fs := flag.NewFlagSet("workspace status", flag.ContinueOnError)
	path := fs.String("path", "", "workspace directory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *path == "" {
		fs.Usage()
		return fmt.Errorf("workspace status requires -path")
	}

	ws, err := workspace.Open(*path)
	if err != nil {
		return err
	}
	collections, err := ws.ModifiedCollections()
	if err != nil {
		return err
	}
	modified, err := ws.Modified()
	if err != nil {
		return err
	}

	fmt.Printf("Workspace: %s\n", ws.Root())
	fmt.Printf("Modified: %d stickers in %d collections\n", len(modified), len(collections))
	names := make([]string, 0, len(collections))
	for name := range collections {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s\n", name)
		for _, s := range modified {
			if s.Collection == name {
				fmt.Printf("    %s\n", s.Name)
			}
		}
	}
	return nil
}

func workspacePackage(args []string) error {
	fs := flag.NewFlagSet("workspace package", flag.ContinueOnError)
	path := fs.String("path", "", "workspace directory")
	dist := fs.String("dist", "", "output directory (default: dist next to the workspace)")
	collections := fs.Bool("collections", false, "package whole collections that contain a modified sticker")
	prefix := fs.String("prefix", modpack.DefaultPrefix, "path of the textures inside the mod archive")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *path == "" {
		fs.Usage()
		return fmt.Errorf("workspace package requires -path")
	}

	ws, err := workspace.Open(*path)
	if err != nil {
		return err
	}
	if *dist == "" {
		*dist = filepath.Join(filepath.Dir(filepath.Clean(ws.Root())), "dist")
	}

	result, err := ws.Package(*dist, workspace.WithCollections(*collections), workspace.WithArchivePrefix(*prefix))
	if err != nil {
		return err
	}

	for _, fe := range result.Errors {
		fmt.Fprintf(os.Stderr, "%v\n", fe)
	}
	if result.Archive == "" {
		fmt.Println("No modified stickers")
		return nil
	}
	fmt.Printf("Packaged %d files → %s\n", len(result.Files), result.Archive)
	if len(result.Errors) > 0 {
		return fmt.Errorf("%d stickers failed", len(result.Errors))
	}
	return nil
}
