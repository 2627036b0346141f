// Copyright 2026 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package dirtytracker_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/google/dirtytracker"
)

func Example() {
	dir, err := os.MkdirTemp("", "dirtytracker-example")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)

	ctx := context.Background()
	t, err := dirtytracker.New(ctx, dir)
	if err != nil {
		log.Fatal(err)
	}
	defer t.Close()

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hello"), 0o600); err != nil {
		log.Fatal(err)
	}
	if err := t.Sync(ctx); err != nil {
		log.Fatal(err)
	}

	paths, ok := t.RelPaths()
	if !ok {
		fmt.Println("rescan everything")
		return
	}
	fmt.Println(t.State(), paths)
}
