// SPDX-License-Identifier: Apache-2.0

package sources

import "github.com/credsweeper/credsweeper-mcp/internal/scan"

// Default returns the built-in structured sources in detection order. More
// specific sources come before generic ones to avoid mis-detection.
func Default() []scan.LineSource {
	return []scan.LineSource{
		NewKubernetesSource(),
		NewYAMLSource(),
	}
}
