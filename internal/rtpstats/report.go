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

package rtpstats

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
)

// WriteTable renders a Snapshot as a two-column table, the console
// equivalent of the spec's periodic stdout line, with byte counts and
// rates given in human-friendly units rather than raw numbers.
func WriteTable(w io.Writer, snap Snapshot) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"metric", "value"})
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	table.Append([]string{"packets received", humanize.Comma(int64(snap.PacketsReceived))})
	table.Append([]string{"packets lost", humanize.Comma(int64(snap.PacketsLost))})
	table.Append([]string{"packets reordered", humanize.Comma(int64(snap.PacketsReordered))})
	table.Append([]string{"retransmit requests", humanize.Comma(int64(snap.RetransmitRequests))})
	table.Append([]string{"frames received", humanize.Comma(int64(snap.FramesReceived))})
	table.Append([]string{"bytes received", humanize.Bytes(snap.TotalBytes)})
	table.Append([]string{"elapsed", snap.Elapsed.Round(time.Second).String()})
	table.Append([]string{"bitrate", fmt.Sprintf("%.1f kbps", snap.BitrateKbps)})
	table.Append([]string{"frame rate", fmt.Sprintf("%.2f fps", snap.FrameRateFPS)})

	table.Render()
}
