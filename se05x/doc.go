// Package se05x adapts the vendor command-line tool for the SE05x secure
// element to the two operations provisioning needs: probing whether a named
// object exists inside the secure element, and importing a certificate from
// the secure element into a PKCS#11 token slot.
//
// Objects inside the secure element are addressed by hex identifiers like
// 0x83000042. On the PKCS#11 side the same object is addressed by a label
// derived from the identifier with a fixed prefix substitution
// (0x83000042 <-> SE_83000042), so no mapping table is persisted anywhere;
// Label and ObjectID convert in both directions.
package se05x
