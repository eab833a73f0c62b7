// Package guing is the in-game interface of an MMO client, built on
// [Ebitengine].
//
// # Quick start
//
// Create a [GUI], run its input pipeline on its own goroutine and call it
// from your [ebiten.Game]:
//
//	gui := guing.New(cfg, guing.Options{Logger: logger})
//	go gui.Input().Run(ctx)
//	source := guing.NewEbitenSource(cfg.UIScale, 50*time.Millisecond)
//
//	func (g *Game) Update() error {
//		source.Poll(gui.Input())
//		gui.Update()
//		return nil
//	}
//	func (g *Game) Draw(s *ebiten.Image) { gui.DrawFrame(s, deltaMillis) }
//
// # Widgets
//
// Every element is a [Widget]. Widgets form a tree rooted at [GUI.Root];
// positions are relative to the parent. Behaviour is composed rather than
// inherited: a [Painter] draws, a [Layout] arranges children, a [HitShape]
// refines hit testing and hooks such as OnMouse and OnShow react to events.
// [Panel], [Label], [Image], [Button], [SlotGrid], [Journal], [Indicator],
// [ChatLayer], [TextEntry] and [CharacterList] embed *Widget.
//
// Moving, resizing or reparenting a widget marks its ancestors' layout
// dirty. Layouts are recomputed lazily when the widget is next drawn.
//
// # Input
//
// Raw device events flow through a [Pipeline] that coarsens them into
// clicks, double-clicks and drags (see [Coarsener]) on its own goroutine.
// The GUI queues the results and dispatches them during Update: keyboard to
// the focused widget first, mouse to the topmost widget under the pointer
// unless a widget holds exclusive capture ([GUI.SetExclusiveMouse]).
//
// # Textures
//
// An [AtlasStore] loads TexturePacker atlases. Every [Texture] taken from an
// atlas holds a reference; the atlas is unloaded when the last one is
// removed. GPU uploads and deallocations run as [RenderTask] values on the
// render thread.
//
// # Persistence
//
// [GUI.EndSession] saves the window layout per character and
// [GUI.StartSession] restores it. Blobs of an unknown version or failing
// validation are ignored and the default layout is kept.
//
// [Ebitengine]: https://ebitengine.org
package guing
