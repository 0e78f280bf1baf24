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


/*
Package reembed regenerates every vector in the index with a different
embedding model.

The index records the model it was built with in its manifest, and the
searcher refuses to run against a mismatched model. Switching models
therefore means rewriting every stored vector, which is what this
package does: it walks all songs and all sections in batches, embeds
their text with the new model, normalizes and stores the new vectors,
and finally updates the manifest.

The manifest is only rewritten after both collections have been fully
processed. An interrupted run leaves the old manifest in place, so the
model-mismatch check still fires and the run can simply be repeated.

Embedding calls are retried with exponential backoff, and progress is
reported to a caller-supplied writer.

Usage:

	reembedder := reembed.NewReembedder(songs, sections, manifests, embedder, nil, os.Stderr)
	if err := reembedder.Run(ctx); err != nil {
		log.Fatal(err)
	}
*/
package reembed
