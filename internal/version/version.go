// Package version provides build and version information.
package version

// Version is the current application version.
const Version = "0.4.0"

// Milestones:
// 0.4.0 - Desktop window frontend, scripted snapshots with WebP output
// 0.3.0 - Tile list view, catalog watch, event log and open counts
// 0.2.0 - Two-phase enlarge transition, scrim, link preview
// 0.1.0 - Initial release: sphere layout, drag rotation with inertia, terminal dome view
