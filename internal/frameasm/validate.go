// Copyright 2023 LiveKit, Inc.
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

package frameasm

// IsValidJPEG reports whether buf looks like a JPEG: starts with the
// SOI marker (0xFF 0xD8) and ends with the EOI marker (0xFF 0xD9).
// This is the same minimal check original_source/client.c's
// is_valid_jpeg performs — no marker-segment walking, no
// quantization-table validation. A fuller JPEG parser is out of scope
// (see DESIGN.md): the core only needs to decide whether to drop a
// corrupted reassembly, not decode the image.
func IsValidJPEG(buf []byte) bool {
	if len(buf) < 4 {
		return false
	}
	if buf[0] != 0xFF || buf[1] != 0xD8 {
		return false
	}
	if buf[len(buf)-2] != 0xFF || buf[len(buf)-1] != 0xD9 {
		return false
	}
	return true
}
