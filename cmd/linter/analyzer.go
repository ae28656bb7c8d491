// Package linter содержит анализатор nocrash, запрещающий аварийное завершение вне main.main.
package linter

import (
	"go/ast"
	"go/types"
	"strings"

	"golang.org/x/tools/go/analysis"
)

const zapPath = "go.uber.org/zap"

var Analyzer = &analysis.Analyzer{
	Name: "nocrash",
	Doc:  "reports builtin panic, log.Fatal*, os.Exit and zap Fatal/Panic calls outside main.main",
	Run:  run,
}

func run(pass *analysis.Pass) (interface{}, error) {
	for _, file := range pass.Files {
		pkgName := file.Name.Name
		for _, decl := range file.Decls {
			funcName := ""
			if fDecl, ok := decl.(*ast.FuncDecl); ok {
				if fDecl.Body == nil {
					continue
				}
				// Методы с именем main не считаются точкой входа.
				if fDecl.Recv == nil {
					funcName = fDecl.Name.Name
				}
			}
			inMain := pkgName == "main" && funcName == "main"
			ast.Inspect(decl, func(node ast.Node) bool {
				if call, ok := node.(*ast.CallExpr); ok {
					checkCall(pass, call, inMain)
				}
				return true
			})
		}
	}
	return nil, nil
}

func checkCall(pass *analysis.Pass, call *ast.CallExpr, inMain bool) {
	// Встроенный panic запрещён везде, в том числе в main.main.
	if id, ok := call.Fun.(*ast.Ident); ok {
		if id.Name == "panic" {
			if obj := pass.TypesInfo.Uses[id]; obj != nil && obj.Pkg() == nil {
				pass.Reportf(id.Pos(), "use of builtin panic is discouraged")
			}
		}
		return
	}

	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok || inMain {
		return
	}

	if ident, ok := sel.X.(*ast.Ident); ok {
		if pkgNameObj, ok := pass.TypesInfo.Uses[ident].(*types.PkgName); ok {
			checkPackageFunc(pass, sel, pkgNameObj.Imported().Path())
			return
		}
	}
	checkZapMethod(pass, sel)
}

func checkPackageFunc(pass *analysis.Pass, sel *ast.SelectorExpr, pkgPath string) {
	name := sel.Sel.Name
	switch pkgPath {
	case "log":
		if name == "Fatal" || name == "Fatalf" || name == "Fatalln" {
			pass.Reportf(sel.Sel.Pos(), "call to log.Fatal or os.Exit outside main.main")
		}
	case "os":
		if name == "Exit" {
			pass.Reportf(sel.Sel.Pos(), "call to log.Fatal or os.Exit outside main.main")
		}
	}
}

// checkZapMethod ловит Fatal*/Panic*/DPanic* на *zap.Logger и *zap.SugaredLogger.
func checkZapMethod(pass *analysis.Pass, sel *ast.SelectorExpr) {
	selection, ok := pass.TypesInfo.Selections[sel]
	if !ok || selection.Kind() != types.MethodVal {
		return
	}
	fn, ok := selection.Obj().(*types.Func)
	if !ok || fn.Pkg() == nil || fn.Pkg().Path() != zapPath {
		return
	}
	name := fn.Name()
	if strings.HasPrefix(name, "Fatal") || strings.HasPrefix(name, "Panic") || strings.HasPrefix(name, "DPanic") {
		pass.Reportf(sel.Sel.Pos(), "call to zap %s outside main.main", name)
	}
}
