// Package tools exposes the geocoder as agent tools.
//
// Two registration conventions exist. A legacy tool is a callable object with
// a name, a description, and a keyword-only call taking exactly the parameters
// of the underlying operation. A declarative tool is built from a name, a
// description and a function reference, and the function's input struct is
// the parameter schema (ADK functiontool).
//
// [GetGeocodingTools] picks one convention for both tools. The declarative
// capability is probed once per process; callers never branch on it.
package tools
