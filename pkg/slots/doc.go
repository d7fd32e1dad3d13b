// Package slots provides the Redis storage layout for careersync documents.
//
// # Overview
//
// A slot is a named JSON value (one per synced document) stored as a Redis
// string. Every write to a slot is followed by a ChangeEvent published on the
// workspace's slot_events channel, which is how other processes sharing the
// same Redis learn that a document changed. This is the server-side equivalent
// of the browser's storage event.
//
// Capped logs (the analytics event log) are stored as Redis lists under the
// slot key and trimmed on every append.
//
// # Multi-Workspace Support
//
// All keys and channels are namespaced by workspace so that several
// independent deployments can share one Redis server:
//
//	careersync:{workspace}:slot:{name}
//	careersync:{workspace}:slot_events
//
// # Usage Example
//
//	client, err := slots.NewClient(&redis.Options{Addr: "localhost:6379"}, "default")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
//	if err := client.SetSlot(ctx, "admin_settings", payload, "cli-1234"); err != nil {
//		log.Fatal(err)
//	}
//
//	sub, err := client.SubscribeSlotEvents(ctx)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer sub.Close()
//
//	for event := range sub.Events() {
//		fmt.Println(event.Key, event.Source)
//	}
//
// # Delivery
//
// Pub/Sub delivery is at-most-once. Consumers that cannot tolerate a missed
// event should also poll (see internal/realtime).
package slots
