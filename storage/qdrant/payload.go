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

package qdrant

import (
	"time"

	"github.com/poiesic/lyrica/core"
	pb "github.com/qdrant/go-client/qdrant"
)

func stringValue(s string) *pb.Value {
	return &pb.Value{Kind: &pb.Value_StringValue{StringValue: s}}
}

func intValue(i int64) *pb.Value {
	return &pb.Value{Kind: &pb.Value_IntegerValue{IntegerValue: i}}
}

func listValue(items []string) *pb.Value {
	values := make([]*pb.Value, len(items))
	for i, s := range items {
		values[i] = stringValue(s)
	}
	return &pb.Value{Kind: &pb.Value_ListValue{ListValue: &pb.ListValue{Values: values}}}
}

func stringList(v *pb.Value) []string {
	list := v.GetListValue()
	if list == nil {
		return nil
	}
	items := make([]string, 0, len(list.GetValues()))
	for _, val := range list.GetValues() {
		items = append(items, val.GetStringValue())
	}
	return items
}

func songPayload(song *core.Song) map[string]*pb.Value {
	return map[string]*pb.Value{
		"source_id":    stringValue(song.SourceId),
		"title":        stringValue(song.Title),
		"artist":       stringValue(song.Artist),
		"genres":       listValue(song.Genres),
		"popularity":   intValue(int64(song.Popularity)),
		"release_date": stringValue(song.ReleaseDate),
		"url":          stringValue(song.URL),
		"full_lyrics":  stringValue(song.FullLyrics),
		"inserted_at":  intValue(song.InsertedAt.UnixMicro()),
		"updated_at":   intValue(song.UpdatedAt.UnixMicro()),
	}
}

func songFromPayload(id core.ID, payload map[string]*pb.Value) *core.Song {
	song := &core.Song{Id: id}
	for k, v := range payload {
		switch k {
		case "source_id":
			song.SourceId = v.GetStringValue()
		case "title":
			song.Title = v.GetStringValue()
		case "artist":
			song.Artist = v.GetStringValue()
		case "genres":
			song.Genres = stringList(v)
		case "popularity":
			song.Popularity = int(v.GetIntegerValue())
		case "release_date":
			song.ReleaseDate = v.GetStringValue()
		case "url":
			song.URL = v.GetStringValue()
		case "full_lyrics":
			song.FullLyrics = v.GetStringValue()
		case "inserted_at":
			song.InsertedAt = time.UnixMicro(v.GetIntegerValue())
		case "updated_at":
			song.UpdatedAt = time.UnixMicro(v.GetIntegerValue())
		}
	}
	return song
}

func sectionPayload(section *core.Section) map[string]*pb.Value {
	return map[string]*pb.Value{
		"song_id":  intValue(int64(section.SongId)),
		"title":    stringValue(section.Title),
		"artist":   stringValue(section.Artist),
		"genres":   listValue(section.Genres),
		"type":     stringValue(section.Type),
		"number":   intValue(int64(section.Number)),
		"position": intValue(int64(section.Position)),
		"text":     stringValue(section.Text),
	}
}

func sectionFromPayload(id core.ID, payload map[string]*pb.Value) *core.Section {
	section := &core.Section{Id: id}
	for k, v := range payload {
		switch k {
		case "song_id":
			section.SongId = core.ID(v.GetIntegerValue())
		case "title":
			section.Title = v.GetStringValue()
		case "artist":
			section.Artist = v.GetStringValue()
		case "genres":
			section.Genres = stringList(v)
		case "type":
			section.Type = v.GetStringValue()
		case "number":
			section.Number = int(v.GetIntegerValue())
		case "position":
			section.Position = int(v.GetIntegerValue())
		case "text":
			section.Text = v.GetStringValue()
		}
	}
	return section
}
