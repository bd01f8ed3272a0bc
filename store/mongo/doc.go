// Package mongo implements the hookq store on MongoDB, one document per
// hook. Claims use FindOneAndUpdate so concurrent schedulers never
// double-claim, and updates are $set partial updates so writers touching
// disjoint fields never clobber each other.
package mongo
