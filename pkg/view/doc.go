// Package view hosts element instances and executes render decisions
// against them.
//
// An Element owns the settings store, host node and stylesheet container of
// one element instance. When its settings change, the element classifies the
// change (package classify) and hands the resulting action to its
// Dispatcher, which patches styles and classes in place, re-renders the
// template locally, or requests markup from the remote back end.
//
// All element methods must run on the editor's UI thread. The only
// asynchronous boundary is the remote render: its result is posted back
// through the Scheduler and discarded if the element was destroyed or a
// newer request superseded it.
package view
