package main

import (
	"context"
	"log"
	"time"

	"github.com/fsnotify/fsnotify"
)

// settleTime is how long the file system has to be quiet before a change is
// acted upon. Editors tend to write a file in several steps.
const settleTime = 20 * time.Millisecond

// watchSources calls build and then calls it again every time one of the
// files it reported changes, until the context is canceled.
//
// build is called on the calling goroutine.
func watchSources(ctx context.Context, build func(context.Context) ([]string, error)) {
	for ctx.Err() == nil {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			log.Println(err)
			return
		}
		files, err := build(ctx)
		if err == nil {
			log.Printf("Program linked, watching %d files", len(files))
		}
		for _, f := range files {
			if err := watcher.Add(f); err != nil {
				log.Println(err)
			}
		}

		select {
		case <-watcher.Events:
			t := time.NewTimer(settleTime)
		outer:
			for {
				select {
				case <-watcher.Events:
					t.Reset(settleTime)
				case <-t.C:
					break outer
				}
			}
		case err := <-watcher.Errors:
			log.Println(err)
		case <-ctx.Done():
		}
		watcher.Close()
	}
}
