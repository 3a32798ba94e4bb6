// EDN reader
//
// Parses one EDN literal into an immutable *Value tree. The subset covered
// here has no tagged elements (#tag value), no discard (#_) and no
// characters; text escapes are limited to \" and \t (any other backslash
// pair is kept as written).
//
// examples:
//
//   [:find ?x :where [?x :foaf/knows "Alice"]]
//   {:db/ident :person/name, :db/cardinality :db.cardinality/one}
//   #{1 2N 3.0 -4.5e10 nil true}
//
// Sets and maps are kept in a canonical order defined by Compare, so
// duplicate set elements collapse and a repeated map key keeps its last
// value.
//
// PEG (ordered choice, first match wins):
//
//  value       <- _ ( nil / boolean / float / bigint / integer / text /
//                     keyword / symbol / list / vector / map / set ) _
//  _           <- ( [ \r\n\t,] / ";" [^\n]* )*
//
//  nil         <- "nil" !boundary
//  boolean     <- ( "true" / "false" ) !boundary
//  boundary    <- [-A-Za-z0-9*!_?$%&=<>/]
//
//  int         <- [+-]? [0-9]+
//  frac        <- "." [0-9]+
//  exp         <- [eE] [+-]? [0-9]+
//  float       <- int frac exp / int exp / int frac
//  bigint      <- int "N"
//  integer     <- int
//
//  text        <- "\"" ( "\\\"" / "\\t" / "\\" . / [^"] )* "\""
//
//  initial     <- [A-Za-z0-9*!_?$%&=<>]
//  subsequent  <- initial / "-"
//  component   <- initial subsequent*
//  name        <- component / "."+
//  symbol      <- ( component ( "." component )* "/" )? name
//                 (a bare nil, true or false is never a symbol)
//  keyword     <- ":" ( [A-Za-z0-9]+ ( "." [A-Za-z0-9]+ )* "/" )? name
//
//  list        <- "(" _ value* _ ")"
//  vector      <- "[" _ value* _ "]"
//  map         <- "{" _ ( value value )* _ "}"
//  set         <- "#{" _ value* _ "}"
package edn
