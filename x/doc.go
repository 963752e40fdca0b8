/*
Package x contains some standard extensions

Extensions implement common functionality (Handler, Decorator, etc.)
for use in custody apps. This top level package holds the pieces shared by
all of them: the Authenticator abstraction and the invoke capability used
by vaults and governors to act on other extensions.
*/
package x
