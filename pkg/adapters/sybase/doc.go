// Package sybase provides a Sybase ASE dialect adapter.
//
// Sybase ASE drivers (ODBC in particular) do not bind parameters reliably,
// so every statement is rendered into literal SQL before it reaches the
// driver. Whether a value is quoted depends on the native type of the
// column it is compared against, which the adapter reads from the system
// catalogs (syscolumns, systypes) of every table the statement touches.
//
// Features:
//   - Literal compilation of builder statements using catalog type metadata
//   - Raw statements classified by the runtime type of each value
//   - OFFSET pagination emulated with #tmpPaginate/#tmpTable and identity(18)
//   - BEGIN TRAN/COMMIT TRAN/ROLLBACK TRAN when the driver has no sql.Tx
//   - Pretend mode: statements are recorded to the query log, never executed
//   - Schema grammar: Blueprint -> ASE DDL
//
// Usage:
//
//	import (
//	    "github.com/ruslano69/tdtp-sybase/pkg/adapters"
//	    _ "github.com/ruslano69/tdtp-sybase/pkg/adapters/sybase"
//	)
//
//	adapter, err := adapters.New(ctx, adapters.Config{
//	    Type:   "sybase",
//	    Driver: "odbc",
//	    DSN:    "DSN=ase;UID=sa;PWD=secret",
//	})
//
//	b := query.Table("users").Where("id", "=", 42).Skip(20).Take(10)
//	stmt, _ := query.NewGenerator().Select(b)
//	rows, err := adapter.Select(ctx, stmt)
package sybase
