// Package feed implements the selection-scoped bid synchronization
// engine: one product is selected at a time, its highest bid is pulled
// on every selection change, and the globally broadcast update stream is
// filtered down to the selection and merged into a single view.
//
// Two rules keep the view consistent:
//   - Every snapshot load carries the generation current when it was
//     issued; completions whose generation is no longer live are
//     discarded, so a superseded selection can never write the view.
//   - Push updates are filtered against the selection read at delivery
//     time; a matching update always overwrites the view.
//
// All state lives behind one mutex, so every write is atomic with
// respect to every other write.
package feed
