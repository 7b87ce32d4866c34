// Package resource provides a registry of live host objects keyed by name.
//
// The registry holds weak references: registering a value never extends its
// lifetime. A session uses it to observe which proxies are still alive, by the
// engine variable name each proxy owns, without keeping them from being
// garbage collected.
//
//	table := resource.NewTable[Proxy]()
//	table.Insert("PROXY_VAL0__", p)
//
//	p, ok := table.Get("PROXY_VAL0__") // ok while p is reachable elsewhere
//	names := table.Names()             // live names, reclaimed entries pruned
//
// # Observers
//
// Register observers to track lifecycle events:
//
//	table.Subscribe(resource.ObserverFunc(func(e resource.Event) {
//	    switch e.Type {
//	    case resource.EventCreated:
//	        log.Printf("%s created", e.Name)
//	    case resource.EventDropped:
//	        log.Printf("%s dropped", e.Name)
//	    case resource.EventCollected:
//	        log.Printf("%s collected", e.Name)
//	    }
//	}))
//
// Collected events are delivered when a pruning call notices the reclaimed
// referent, not when the collector runs.
package resource
