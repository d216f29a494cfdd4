// Package viz renders encounter tracks for the terminal.
//
//   - [Canvas]: braille pixel canvas, 2x4 dots per cell
//   - [PlanView]: north/east projection of both aircraft tracks
//   - lipgloss styles shared by the CLI summary and the replay viewer
package viz
