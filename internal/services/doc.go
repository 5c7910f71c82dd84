// Package services holds the business logic between the HTTP transport and
// the warehouse/analytics layers. The dashboard service owns the loaded
// dataset snapshot; handlers never touch the warehouse directly.
package services
