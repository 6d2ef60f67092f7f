package luascript

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/raphi011/rbee/internal/log"
	"github.com/raphi011/rbee/internal/plug"
)

// newState creates a sandboxed interpreter whose rbee module is rooted at
// root, and runs the script's top level in it.
func (p *Plugin) newState(ctx context.Context, root string) (*lua.LState, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	L.SetContext(ctx)

	openSafeLibraries(L)
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "module"} {
		L.SetGlobal(name, lua.LNil)
	}
	L.SetGlobal("print", L.NewFunction(func(L *lua.LState) int {
		parts := make([]string, L.GetTop())
		for i := range parts {
			parts[i] = L.ToStringMeta(L.Get(i + 1)).String()
		}
		log.FromContext(ctx).Debug("lua print", "plugin", p.name, "msg", strings.Join(parts, "\t"))
		return 0
	}))
	L.SetGlobal("rbee", newModule(ctx, L, root))

	err := callProtected(func() error {
		L.Push(L.NewFunctionFromProto(p.proto))
		return L.PCall(0, lua.MultRet, nil)
	})
	if err != nil {
		L.Close()
		return nil, err
	}
	return L, nil
}

// openSafeLibraries opens base, table, string and math. io, os, debug and
// package stay closed. newState replaces base's print, which would write to
// stdout.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// newModule builds the rbee table. Paths given to it are relative to root
// and may not leave it.
func newModule(ctx context.Context, L *lua.LState, root string) *lua.LTable {
	mod := L.NewTable()
	mod.RawSetString("SUCCESS", lua.LString(plug.Success.String()))
	mod.RawSetString("WARNING", lua.LString(plug.Warning.String()))
	mod.RawSetString("ERROR", lua.LString(plug.Error.String()))

	L.SetFuncs(mod, map[string]lua.LGFunction{
		// files([ext]) lists regular files below root, sorted, skipping .git.
		"files": func(L *lua.LState) int {
			ext := L.OptString(1, "")
			files, err := listFiles(root, ext)
			if err != nil {
				L.Push(lua.LNil)
				L.Push(lua.LString(err.Error()))
				return 2
			}
			tbl := L.CreateTable(len(files), 0)
			for _, f := range files {
				tbl.Append(lua.LString(f))
			}
			L.Push(tbl)
			return 1
		},
		// read(rel) returns the file content, or nil and an error message.
		"read": func(L *lua.LState) int {
			data, err := readConfined(root, L.CheckString(1))
			if err != nil {
				L.Push(lua.LNil)
				L.Push(lua.LString(err.Error()))
				return 2
			}
			L.Push(lua.LString(data))
			return 1
		},
		"exists": func(L *lua.LState) int {
			_, err := statConfined(root, L.CheckString(1))
			L.Push(lua.LBool(err == nil))
			return 1
		},
		"log": func(L *lua.LState) int {
			log.FromContext(ctx).Debug("lua", "msg", L.CheckString(1))
			return 0
		},
	})
	return mod
}

var errEscapes = errors.New("path escapes repository")

// openRoot opens root for access to rel. Lookups through the returned
// os.Root cannot leave root, neither by ".." nor by symbolic links.
func openRoot(root, rel string) (*os.Root, string, error) {
	rel = filepath.FromSlash(rel)
	if !filepath.IsLocal(rel) {
		return nil, "", errEscapes
	}
	r, err := os.OpenRoot(root)
	if err != nil {
		return nil, "", err
	}
	return r, rel, nil
}

func readConfined(root, rel string) ([]byte, error) {
	r, rel, err := openRoot(root, rel)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return r.ReadFile(rel)
}

func statConfined(root, rel string) (fs.FileInfo, error) {
	r, rel, err := openRoot(root, rel)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return r.Stat(rel)
}

func listFiles(root, ext string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || (ext != "" && !strings.EqualFold(filepath.Ext(d.Name()), ext)) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(files)
	return files, nil
}
