// Package templates embeds the FinDatEx field catalogs shipped with
// regcheck: the European PRIIPs Template (EPT V2.1) and the Tripartite
// Template (TPT V6).
//
// The catalogs are plain schema definitions, compiled at load time like
// any user-supplied schema. Additional or newer catalogs are loaded from
// disk through package registry.
package templates
