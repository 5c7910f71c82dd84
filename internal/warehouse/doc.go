// Package warehouse loads the star-schema CSV tables and denormalizes them.
//
// The dataset consists of a fact table and five dimension tables
// (customer, item, store, time, transaction type). Load reads all six files
// concurrently into typed in-memory tables; Join produces the wide row set
// the analytics package aggregates over. Tables are read-only after loading;
// a data refresh builds a new Tables value instead of mutating the old one.
package warehouse
