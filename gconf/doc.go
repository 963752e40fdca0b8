/*
Package gconf implements a configuration store intended to be used as a
global, in-database configuration.

Each extension keeps a single configuration object under the "_c:<pkg>"
key. It is loaded from the "conf" section of the genesis file and can be
updated afterwards by the configuration owner with a patch message.

Not being able to load a configuration is a critical condition for an
extension. Handlers return the error and the transaction fails.
*/
package gconf
