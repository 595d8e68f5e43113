/*
Package deposit orchestrates funding a virtual card from a wallet.

A Session models one open deposit dialog: wallets and the fee schedule
are fetched concurrently on Open, the conversion breakdown is derived
synchronously from the current form state, and remaining daily/monthly
limits are refetched whenever the amount or the fee schedule changes.

Limit fetches race by nature (the amount can change faster than a fetch
resolves), so every fetch carries a generation number and stale results
are discarded. Closing a session cancels its context; nothing in flight
mutates session state after that.

The Service behind the session is the submission gateway: it debits the
wallet, credits the card, and writes the ledger row in one database
transaction, enforcing the fee schedule's min/max/daily/monthly limits.
*/
package deposit
