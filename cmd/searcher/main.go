// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/poiesic/lyrica"
	"github.com/poiesic/lyrica/core"
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
}

func main() {
	db, err := lyrica.NewDatabase("./lyrica.db")
	if err != nil {
		panic(err)
	}
	defer db.Close()

	ctx := context.Background()
	searcher, err := db.NewSearcher(ctx)
	if err != nil {
		panic(err)
	}

	var results []*core.ScoredResult
	if len(os.Args) > 1 {
		results, err = searcher.Search(ctx, strings.Join(os.Args[1:], " "), 5)
	} else {
		results, err = searcher.Search(ctx, "songs about drifting lanterns", 5)
	}
	if err != nil {
		panic(err)
	}

	fmt.Printf("Found %d hits\n", len(results))
	for i, hit := range results {
		fmt.Printf("%d: '%s' by %s [%0.3f]\n", i, hit.Title, hit.Artist, hit.Combined)
		if hit.BestSection != nil {
			fmt.Printf("   %s %d: %s\n", hit.BestSection.Type, hit.BestSection.Number, hit.BestSection.Text)
		}
	}
}
