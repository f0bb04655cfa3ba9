package tree

import (
	"encoding/json"

	"github.com/buger/jsonparser"

	apperrors "github.com/matzehuels/godswood/pkg/errors"
	"github.com/matzehuels/godswood/pkg/node"
)

// Input document keys.
const (
	keyName        = "name"
	keyDisplayName = "display_name"
	keyChildren    = "children"
)

// Parse reads a JSON document into linked nodes of store and returns the
// root handle.
//
// The document must be an object:
//
//	{ "name": "app1", "display_name": "App",
//	  "children": { "node1": {}, "node2": { "children": { "node3": {} } } } }
//
// The root is created with [node.Store.AddAppNode] from the top-level name
// and display_name. Each entry of a "children" object becomes a node named
// by its key, created with [node.Store.AddNode] and linked to its parent in
// document order. Grandchildren are parsed and linked before their parent is
// attached.
//
// Missing fields take the store defaults. A "children" value that is not an
// object is ignored, and a child entry that is not an object becomes a node
// with default fields. Parse never assigns [node.KindLeaf].
//
// Parse returns an INVALID_INPUT error when the document is not a JSON object
// or is malformed, and passes store errors through unchanged. Nodes created
// before an error stay in the store.
func Parse(store *node.Store, data []byte) (node.Ref, error) {
	// jsonparser only checks the bytes it visits.
	if !json.Valid(data) {
		return 0, apperrors.New(apperrors.ErrCodeInvalidInput, "document is not valid JSON")
	}
	doc, typ, _, err := jsonparser.Get(data)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "decode document")
	}
	if typ != jsonparser.Object {
		return 0, apperrors.New(apperrors.ErrCodeInvalidInput, "document must be a JSON object, got %s", typ)
	}

	root, err := store.AddAppNode(readFields(doc))
	if err != nil {
		return 0, err
	}
	if err := parseChildren(store, root, doc); err != nil {
		return 0, err
	}
	return root, nil
}

func parseChildren(store *node.Store, parent node.Ref, obj []byte) error {
	children, typ, _, err := jsonparser.Get(obj, keyChildren)
	if err != nil || typ != jsonparser.Object {
		return nil
	}

	err = jsonparser.ObjectEach(children, func(key, value []byte, dataType jsonparser.ValueType, _ int) error {
		var f node.Fields
		if dataType == jsonparser.Object {
			f.DisplayName = readString(value, keyDisplayName)
		}
		child, err := store.AddNode(keyString(key), f)
		if err != nil {
			return err
		}
		if dataType == jsonparser.Object {
			if err := parseChildren(store, child, value); err != nil {
				return err
			}
		}
		return store.Link(parent, child)
	})
	if err != nil && apperrors.GetCode(err) == "" {
		return apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "decode children")
	}
	return err
}

func readFields(obj []byte) node.Fields {
	return node.Fields{
		Name:        readString(obj, keyName),
		DisplayName: readString(obj, keyDisplayName),
	}
}

// readString returns the string at key, or "" when it is absent or not a string.
func readString(obj []byte, key string) string {
	s, err := jsonparser.GetString(obj, key)
	if err != nil {
		return ""
	}
	return s
}

func keyString(key []byte) string {
	s, err := jsonparser.ParseString(key)
	if err != nil {
		return string(key)
	}
	return s
}
