/*
Package events provides the cache event stream: a multi-producer,
multi-subscriber broadcast of typed cache lifecycle events.

Every subscriber sees every event published after it subscribed, in the
order the triggering operations committed. Events are not persisted; a late
subscriber never sees earlier events. Each subscription owns an unbounded
mailbox, so publishers never block on slow consumers.

Subscriptions compose. Filtering helpers (WhereType, WhereKey,
WhereKeyPrefix, Additions, Removals, Expirations, Evictions) return derived
subscriptions of the same element type, and disposing a derived subscription
tears down its upstream chain.
*/
package events
