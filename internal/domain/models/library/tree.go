package library

import "time"

// TreeNode represents the root of the folder tree
type TreeNode struct {
	Folders []*FolderTreeNode `json:"folders"`
}

// FolderTreeNode represents a folder in the tree with nested children
type FolderTreeNode struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	Description    string            `json:"description,omitempty"`
	ParentFolderID *string           `json:"parentFolderId,omitempty"`
	ItemCount      int               `json:"itemCount"`
	Settings       FolderSettings    `json:"settings"`
	CreatedAt      time.Time         `json:"createdAt"`
	Folders        []*FolderTreeNode `json:"folders"` // Pointers for proper nesting
}

// Walk visits every node depth-first, parents before children
func (n *TreeNode) Walk(fn func(node *FolderTreeNode, depth int)) {
	for _, f := range n.Folders {
		walkNode(f, 0, fn)
	}
}

func walkNode(node *FolderTreeNode, depth int, fn func(*FolderTreeNode, int)) {
	fn(node, depth)
	for _, child := range node.Folders {
		walkNode(child, depth+1, fn)
	}
}
