// Package pseudo holds the pseudocode tree produced by the transformer and
// the generator that renders it as indented text.
package pseudo

type NodeKind int

const (
	KindStatement NodeKind = iota
	KindBlock
	KindExpression
	KindComment
)

var nodeKindNames = map[NodeKind]string{
	KindStatement:  "Statement",
	KindBlock:      "Block",
	KindExpression: "Expression",
	KindComment:    "Comment",
}

func (k NodeKind) String() string {
	if name, ok := nodeKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

func (k NodeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Node is one rendered line of pseudocode at a nesting depth. A Block
// carries a header line and nested children one level deeper.
type Node struct {
	Kind        NodeKind `json:"kind"`
	Content     string   `json:"content"`
	IndentLevel int      `json:"indent"`
	Children    []Node   `json:"children,omitempty"`
}

func Statement(level int, content string) Node {
	return Node{Kind: KindStatement, Content: content, IndentLevel: level}
}

func Expression(level int, content string) Node {
	return Node{Kind: KindExpression, Content: content, IndentLevel: level}
}

func Comment(level int, content string) Node {
	return Node{Kind: KindComment, Content: content, IndentLevel: level}
}

func Block(level int, header string, children ...Node) Node {
	return Node{Kind: KindBlock, Content: header, IndentLevel: level, Children: children}
}
