package graph

// Schema is the GraphQL schema served at /graphql.
const Schema = `
	schema {
		query: Query
		mutation: Mutation
		subscription: Subscription
	}

	type Query {
		authUser: User
		user(userId: ID!): User!
		transaction(transactionId: ID!): Transaction!
		transactions: [Transaction!]!
		categoryStatistics: [CategoryStatistics!]!
	}

	type Mutation {
		signUp(input: SignUpInput!): User!
		login(input: LoginInput!): User!
		loginWithToken(token: String!): User!
		logout: LogoutResponse!
		createTransaction(input: CreateTransactionInput!): Transaction!
		updateTransaction(input: UpdateTransactionInput!): Transaction!
		deleteTransaction(transactionId: ID!): Transaction!
	}

	type Subscription {
		transactionCreated: Transaction!
		transactionDeleted: Transaction!
	}

	type User {
		id: ID!
		username: String!
		name: String!
		profilePicture: String!
		transactions: [Transaction!]!
	}

	type Transaction {
		id: ID!
		userId: ID!
		description: String!
		paymentType: String!
		category: String!
		amount: Float!
		location: String
		date: String!
		user: User!
	}

	type CategoryStatistics {
		category: String!
		totalAmount: Float!
	}

	type LogoutResponse {
		message: String!
	}

	input SignUpInput {
		username: String!
		name: String!
		password: String!
		gender: String!
		email: String
	}

	input LoginInput {
		username: String!
		password: String!
	}

	input CreateTransactionInput {
		description: String!
		paymentType: String!
		category: String!
		amount: Float!
		location: String
		date: String
	}

	input UpdateTransactionInput {
		transactionId: ID!
		description: String
		paymentType: String
		category: String
		amount: Float
		location: String
		date: String
	}
`
