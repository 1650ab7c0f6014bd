package query

// Operation documents, one per remote field. Field names and selections are fixed.
const (
	listTodosQuery = `
query ListTodos($first: Int, $after: Cursor, $last: Int, $before: Cursor) {
  listTodos(first: $first, after: $after, last: $last, before: $before) {
    edges {
      node {
        id
        description
        done
        createdAt
      }
      cursor
    }
    pageInfo {
      hasPreviousPage
      hasNextPage
      startCursor
      endCursor
    }
  }
}`

	addTodoMutation = `
mutation AddTodo($description: String!) {
  addTodo(description: $description)
}`

	completeTodoMutation = `
mutation CompleteTodo($id: ID!, $done: Boolean!) {
  completeTodo(id: $id, done: $done)
}`

	toggleAllMutation = `
mutation ToggleAll($done: Boolean!) {
  toggleAll(done: $done)
}`

	clearCompletedMutation = `
mutation ClearCompleted {
  clearCompleted
}`

	editTodoMutation = `
mutation EditTodo($id: ID!, $description: String!) {
  editTodo(id: $id, description: $description)
}`

	removeTodoMutation = `
mutation RemoveTodo($id: ID!) {
  removeTodo(id: $id)
}`
)
