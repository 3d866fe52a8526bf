// Package render draws one dashboard frame from a telemetry snapshot.
//
// A frame is composed off-screen into exactly Width x Height cells and handed
// to a Surface in a single Commit, so the terminal never shows a partially
// drawn frame.
//
// With N > 0 devices the screen is split vertically into a title panel,
// one row per device and a quit hint:
//
//	┌Real-time GPU Monitoring─────────────────────┐  Length(3)
//	│2 GPUs detected                              │
//	└─────────────────────────────────────────────┘
//	┌GPU 0────┐┌GPU Usage %─────┐┌Memory Usage 20%┐  Length(6) per device
//	│Tesla T4 ││████████░░░░░░░░││███░░░░░░░░░░░░░│
//	│Usage: 45││████████░░░░░░░░││███░░░░░░░░░░░░░│
//	│Memory: 2││      45%       ││3.0 GB / 15.0 GB│
//	│         ││████████░░░░░░░░││███░░░░░░░░░░░░░│
//	└─────────┘└────────────────┘└────────────────┘
//	Press 'q' to quit                                 Length(1)
//
// With no devices it is a title panel, a message panel and the hint.
package render
