/*
Package smartcontract contains functions to deal with widely used scripts.
Neo is all about various executed code, verifications and executions of
transactions need NeoVM code and this package simplifies creating it
for common tasks like multisignature verification scripts or transaction
entry scripts that call previously deployed contracts. It also parses
user-supplied contract parameters into values the script builder accepts.
*/
package smartcontract
