// Package domain contains the core business entities and value objects
// of the scheduling engine: the Card record, the Rating and State enums,
// and the ReviewLog. It is independent of any storage or presentation
// mechanism; everything here is plain data plus validation.
package domain
