// Package mobile adapts golang.org/x/mobile input events to vmap events.
//
// Hosts built on x/mobile (or on shiny, which reuses the same event
// types) feed every event from their loop through a Translator and pass
// the result to vmap.Mapper.HandleEvent:
//
//	var tr mobile.Translator
//	for e := range events {
//	    for _, ev := range tr.Translate(e) {
//	        mapper.HandleEvent(ev)
//	    }
//	}
//
// Mouse, touch and key events are translated. Modifier keys produce
// KeyCtrl and KeyAlt events so the mapper's grouping and snap-distance
// gestures work. Size events are reported through Translator.Size.
package mobile
